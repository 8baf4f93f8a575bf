// Package photos downloads, transcodes, and uploads listing photos under a
// global concurrency cap.
package photos

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/estatelink/property-importer/internal/domain"
	"github.com/estatelink/property-importer/internal/logger"
	"github.com/estatelink/property-importer/internal/objectstore"
)

// Processing stages, used to tag failures.
const (
	StageDownload  = "download"
	StageTranscode = "transcode"
	StageUpload    = "upload"
)

// FailedPhoto records one discarded image with enough context to replay.
type FailedPhoto struct {
	URL    string `json:"url"`
	Stage  string `json:"stage"`
	Reason string `json:"reason"`
}

// Pipeline processes image batches. One instance is shared by all listings
// so the semaphore caps in-flight image operations globally.
type Pipeline struct {
	downloader Downloader
	uploader   objectstore.Uploader
	logger     logger.Interface
	sem        chan struct{}
}

// NewPipeline creates a pipeline with the given global concurrency cap.
func NewPipeline(
	downloader Downloader,
	uploader objectstore.Uploader,
	maxConcurrent int,
	log logger.Interface,
) *Pipeline {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Pipeline{
		downloader: downloader,
		uploader:   uploader,
		logger:     log.WithComponent("photos"),
		sem:        make(chan struct{}, maxConcurrent),
	}
}

// ProcessAll runs the download/transcode/upload pipeline for every URL.
// Surviving images are returned as assets; failed ones are recorded and do
// not fail the batch.
func (p *Pipeline) ProcessAll(ctx context.Context, urls []string) ([]domain.PhotoAsset, []FailedPhoto) {
	if len(urls) == 0 {
		return nil, nil
	}

	assets := make([]domain.PhotoAsset, 0, len(urls))
	var failures []FailedPhoto
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, url := range urls {
		select {
		case p.sem <- struct{}{}:
		case <-ctx.Done():
			mu.Lock()
			failures = append(failures, FailedPhoto{URL: url, Stage: StageDownload, Reason: ctx.Err().Error()})
			mu.Unlock()
			continue
		}

		wg.Add(1)
		go func(url string) {
			defer func() {
				<-p.sem
				wg.Done()
			}()

			asset, failure := p.processOne(ctx, url)
			mu.Lock()
			defer mu.Unlock()
			if failure != nil {
				failures = append(failures, *failure)
				return
			}
			assets = append(assets, *asset)
		}(url)
	}

	wg.Wait()

	if len(failures) > 0 {
		p.logger.Warn("image batch finished with failures",
			"succeeded", len(assets),
			"failed", len(failures),
			"failures", failures)
	}

	return assets, failures
}

// processOne runs one image through all three stages.
func (p *Pipeline) processOne(ctx context.Context, url string) (*domain.PhotoAsset, *FailedPhoto) {
	var data []byte
	var contentType string

	err := withRetry(ctx, downloadAttempts, func() error {
		var dlErr error
		data, contentType, dlErr = p.downloader.Download(ctx, url)
		return dlErr
	})
	if err != nil {
		return nil, &FailedPhoto{URL: url, Stage: StageDownload, Reason: err.Error()}
	}
	_ = contentType // format is sniffed from the payload

	variants, err := Transcode(data)
	if err != nil {
		return nil, &FailedPhoto{URL: url, Stage: StageTranscode, Reason: err.Error()}
	}

	asset := &domain.PhotoAsset{
		ID:       uuid.New().String(),
		Variants: make([]domain.PhotoVariant, 0, len(variants)),
	}

	for _, variant := range variants {
		key := buildStorageKey(asset.ID, variant.SizeTag, variant.Extension)

		var publicURL string
		uploadErr := withRetry(ctx, downloadAttempts, func() error {
			var upErr error
			publicURL, upErr = p.uploader.Upload(ctx, key, variant.ContentType, variant.Data)
			return upErr
		})
		if uploadErr != nil {
			return nil, &FailedPhoto{URL: url, Stage: StageUpload, Reason: uploadErr.Error()}
		}

		asset.Variants = append(asset.Variants, domain.PhotoVariant{
			SizeTag:    variant.SizeTag,
			StorageKey: key,
			PublicURL:  publicURL,
		})
	}

	return asset, nil
}

// buildStorageKey creates a collision-resistant object key:
// {id}_{timestamp}-{sizeTag}.{extension}.
func buildStorageKey(assetID, sizeTag, extension string) string {
	return fmt.Sprintf("%s_%d-%s.%s", assetID, time.Now().Unix(), sizeTag, extension)
}
