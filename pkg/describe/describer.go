// Package describe asks a vision model to describe captured images.
package describe

import (
	"context"
	"fmt"
	"image"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/arcamera/cameraview/pkg/client"
	"github.com/arcamera/cameraview/pkg/processing"
	"github.com/arcamera/cameraview/pkg/types"
	"github.com/arcamera/cameraview/pkg/view"
)

// DefaultPrompt asks for a short description and tags as JSON
const DefaultPrompt = `You describe photos taken with a camera.

Return JSON only:
{
  "description": "short neutral sentence (≤ 20 words)",
  "tags": ["tag1", "tag2", "tag3", "tag4", "tag5"]
}

- Description must be brief and factual. Do not guess real identities.
- Tags: lowercase, concise, no punctuation or duplicates.
- JSON only. No markdown, no code fences, no comments, no trailing commas.`

// RawPrompt is used in raw mode when no prompt is configured
const RawPrompt = "Describe this photo in one short, neutral sentence."

// maxTags caps the tags kept per description
const maxTags = 5

// Config holds describer settings
type Config struct {
	Model  string
	Prompt string

	// Raw keeps the model's plain answer as the description instead of
	// asking for JSON with tags.
	Raw bool

	SendSize    int
	SendQuality int
	Timeout     time.Duration
}

// Describer sends each captured image to a vision model in the background.
// It is an observer for a camera view.
type Describer struct {
	client    client.VisionClient
	processor *processing.Processor
	config    Config
	logger    *zap.Logger

	wg      sync.WaitGroup
	mu      sync.Mutex
	results []*types.CaptureDescription
}

var _ view.ImageTakenObserver = (*Describer)(nil)

// New creates a describer
func New(c client.VisionClient, p *processing.Processor, config Config, logger *zap.Logger) *Describer {
	if config.Prompt == "" {
		config.Prompt = DefaultPrompt
		if config.Raw {
			config.Prompt = RawPrompt
		}
	}
	if config.SendQuality <= 0 {
		config.SendQuality = 85
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Describer{
		client:    c,
		processor: p,
		config:    config,
		logger:    logger,
	}
}

// CameraViewTookImage submits the image under a new capture ID
func (d *Describer) CameraViewTookImage(_ *view.CameraView, img image.Image) {
	d.Submit(processing.NewCaptureID(), img)
}

// Submit describes img in the background
func (d *Describer) Submit(captureID string, img image.Image) {
	entry := &types.CaptureDescription{CaptureID: captureID, Model: d.config.Model}

	d.mu.Lock()
	d.results = append(d.results, entry)
	d.mu.Unlock()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx := context.Background()
		if d.config.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d.config.Timeout)
			defer cancel()
		}

		desc, err := d.Describe(ctx, img)

		d.mu.Lock()
		defer d.mu.Unlock()
		if err != nil {
			entry.Error = err.Error()
			d.logger.Warn("describe failed", zap.String("capture_id", captureID), zap.Error(err))
			return
		}
		entry.Result = *desc
		d.logger.Info("capture described",
			zap.String("capture_id", captureID),
			zap.String("description", desc.Description),
			zap.Strings("tags", desc.Tags),
		)
	}()
}

// Describe synchronously asks the model about img
func (d *Describer) Describe(ctx context.Context, img image.Image) (*types.Description, error) {
	imgB64, err := d.processor.PrepareImageForModel(img, "jpg", d.config.SendSize, d.config.SendQuality)
	if err != nil {
		return nil, err
	}
	if d.config.Raw {
		answer, err := d.client.SimpleQuery(ctx, d.config.Model, d.config.Prompt, imgB64)
		if err != nil {
			return nil, err
		}
		answer = strings.TrimSpace(answer)
		if answer == "" {
			return nil, fmt.Errorf("empty answer from %s", d.config.Model)
		}
		return &types.Description{Description: answer, Tags: []string{}}, nil
	}

	desc, err := d.client.DescribeImage(ctx, d.config.Model, d.config.Prompt, imgB64)
	if err != nil {
		return nil, err
	}
	desc.Description = strings.TrimSpace(desc.Description)
	desc.Tags = normalizeTags(desc.Tags)
	return desc, nil
}

// Wait blocks until every submitted image is described and returns the
// results in submission order.
func (d *Describer) Wait() []types.CaptureDescription {
	d.wg.Wait()

	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]types.CaptureDescription, len(d.results))
	for i, r := range d.results {
		out[i] = *r
	}
	return out
}

// normalizeTags ensures tags are cleaned and limited to maxTags entries
func normalizeTags(tags []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, maxTags)
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
		if len(out) == maxTags {
			break
		}
	}
	return out
}
