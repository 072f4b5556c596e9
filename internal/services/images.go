package services

import (
	"context"
	"io"

	"github.com/GregMSThompson/moneylog/internal/imaging"
	"github.com/GregMSThompson/moneylog/pkg/logger"
)

// PrepareImage downscales a captured photo into the data URL used both as
// upload payload and preview. A failure only raises a notice; no form state
// is touched.
func (c *controller) PrepareImage(ctx context.Context, r io.Reader) (imaging.Result, error) {
	if err := c.requireEditMode(); err != nil {
		return imaging.Result{}, err
	}
	c.notices.Push(NoticeInfo, "processing image...")
	res, err := imaging.Downscale(r, c.opts.Image)
	if err != nil {
		logger.FromContext(ctx).Warn("image processing failed", "error", err)
		c.notices.Push(NoticeError, "image processing failed")
		return imaging.Result{}, err
	}
	logger.FromContext(ctx).Debug("image prepared", "width", res.Width, "height", res.Height, "bytes", res.Bytes)
	c.notices.Push(NoticeSuccess, "image compressed")
	return res, nil
}
