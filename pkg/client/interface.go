package client

import (
	"context"

	"github.com/arcamera/cameraview/pkg/types"
)

// VisionClient asks a vision model about an image given as base64
type VisionClient interface {
	SimpleQuery(ctx context.Context, model, prompt, imgB64 string) (string, error)
	DescribeImage(ctx context.Context, model, prompt, imgB64 string) (*types.Description, error)
}
