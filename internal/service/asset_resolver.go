package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Notifuse/ampmailer/internal/domain"
	"github.com/Notifuse/ampmailer/pkg/cache"
	"github.com/Notifuse/ampmailer/pkg/imagedim"
	"github.com/Notifuse/ampmailer/pkg/logger"
	"github.com/Notifuse/ampmailer/pkg/tracing"
)

// Slot resolution outcomes, also used as metric tag values
const (
	OutcomeHosted   = "hosted"
	OutcomeMeasured = "measured"
	OutcomeDefault  = "default"
)

// AssetResolver turns the uploads of a generation request into resolved
// assets, one per image slot
type AssetResolver struct {
	host     domain.ImageHost
	uploads  cache.Cache[*domain.UploadResult]
	cacheTTL time.Duration
	timeout  time.Duration
	logger   logger.Logger
}

// NewAssetResolver creates a resolver. host may be nil, in which case every
// upload is measured locally. uploads may be nil to disable caching.
func NewAssetResolver(host domain.ImageHost, uploads cache.Cache[*domain.UploadResult], cacheTTL, timeout time.Duration, logger logger.Logger) *AssetResolver {
	return &AssetResolver{
		host:     host,
		uploads:  uploads,
		cacheTTL: cacheTTL,
		timeout:  timeout,
		logger:   logger,
	}
}

// ResolveAll resolves every slot concurrently. The returned slice follows the
// order of slots. The only error is the context being done.
func (r *AssetResolver) ResolveAll(ctx context.Context, slots []domain.ImageSlot, req domain.GenerationRequest) ([]domain.SlotResolution, error) {
	results := make([]domain.SlotResolution, len(slots))

	g, gctx := errgroup.WithContext(ctx)
	for i, slot := range slots {
		i, slot := i, slot
		g.Go(func() error {
			results[i] = r.Resolve(gctx, slot, req.Upload(slot.ID))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to resolve image slots: %w", err)
	}

	return results, nil
}

// Resolve produces the asset of one slot. It never fails: hosting and decode
// problems degrade to local measurement and then to the slot defaults.
func (r *AssetResolver) Resolve(ctx context.Context, slot domain.ImageSlot, upload *domain.ImageUpload) domain.SlotResolution {
	log := r.logger.WithField("slot", string(slot.ID))

	if upload == nil {
		tracing.RecordSlotResolution(ctx, string(slot.ID), OutcomeDefault)
		return domain.SlotResolution{
			Slot:  slot.ID,
			Asset: slot.Default(),
			Note: domain.StatusNote{
				Slot:    slot.ID,
				Level:   domain.NoteLevelInfo,
				Message: fmt.Sprintf("No %s uploaded, using the placeholder.", slot.ID),
			},
		}
	}

	identifier := ContentID(slot.ID, upload.Data)
	log = log.WithField("identifier", identifier)

	hosted, err := r.hostUpload(ctx, upload.Data, identifier)
	if err == nil {
		asset := domain.ResolvedAsset{
			URL:    hosted.URL,
			Width:  positiveOr(hosted.Width, slot.DefaultWidth),
			Height: positiveOr(hosted.Height, slot.DefaultHeight),
		}
		log.WithField("url", asset.URL).Info("Image hosted")
		tracing.RecordSlotResolution(ctx, string(slot.ID), OutcomeHosted)
		return domain.SlotResolution{
			Slot:   slot.ID,
			Asset:  asset,
			Real:   slot.IsReal(asset),
			Hosted: true,
			Note: domain.StatusNote{
				Slot:    slot.ID,
				Level:   domain.NoteLevelSuccess,
				Message: fmt.Sprintf("%s hosted at %s (%dx%d).", slot.ID, asset.URL, asset.Width, asset.Height),
			},
		}
	}

	log.Warn(fmt.Sprintf("Image hosting unavailable, measuring locally: %v", err))

	width, height, derr := imagedim.Decode(upload.Data)
	if derr != nil {
		log.Warn(fmt.Sprintf("Failed to measure image: %v", derr))
		tracing.RecordSlotResolution(ctx, string(slot.ID), OutcomeDefault)
		return domain.SlotResolution{
			Slot:  slot.ID,
			Asset: slot.Default(),
			Note: domain.StatusNote{
				Slot:    slot.ID,
				Level:   domain.NoteLevelWarning,
				Message: fmt.Sprintf("%s hosting unavailable (%v) and the image could not be measured (%v), using the placeholder and default size.", slot.ID, err, derr),
			},
		}
	}

	asset := domain.ResolvedAsset{
		URL:    slot.PlaceholderURL,
		Width:  width,
		Height: height,
	}
	tracing.RecordSlotResolution(ctx, string(slot.ID), OutcomeMeasured)
	return domain.SlotResolution{
		Slot:  slot.ID,
		Asset: asset,
		Note: domain.StatusNote{
			Slot:    slot.ID,
			Level:   domain.NoteLevelWarning,
			Message: fmt.Sprintf("%s hosting unavailable (%v), measured %dx%d locally and kept the placeholder url.", slot.ID, err, width, height),
		},
	}
}

// hostUpload uploads through the cache, bounded by the hosting timeout
func (r *AssetResolver) hostUpload(ctx context.Context, data []byte, identifier string) (*domain.UploadResult, error) {
	if r.host == nil {
		return nil, domain.NewConfigurationError("image host", "no image host configured")
	}

	upload := func() (*domain.UploadResult, error) {
		uctx := ctx
		if r.timeout > 0 {
			var cancel context.CancelFunc
			uctx, cancel = context.WithTimeout(ctx, r.timeout)
			defer cancel()
		}

		res, err := r.host.Upload(uctx, data, identifier)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, &domain.TransportError{Op: "image upload", Err: err}
			}
			return nil, err
		}
		if res == nil || res.URL == "" {
			return nil, &domain.TransportError{Op: "image upload", Err: errors.New("host returned no url")}
		}
		return res, nil
	}

	if r.uploads == nil {
		return upload()
	}
	return r.uploads.GetOrLoad(string(r.host.Kind())+":"+identifier, r.cacheTTL, upload)
}

func positiveOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
