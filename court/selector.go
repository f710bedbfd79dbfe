package court

import (
	"context"
	"log/slog"

	"github.com/zalepa/ecourts/config"
)

// SelectCourt opens the cause-list landing page and picks state, district
// and court complex by visible label. Each dropdown is repopulated by the
// previous selection, so the steps run strictly in order and the first
// failure aborts the rest. The returned error wraps ErrSelection.
func SelectCourt(ctx context.Context, page Page, cfg config.Config, c config.Court) error {
	if err := page.Navigate(ctx, cfg.LandingURL()); err != nil {
		return selectionError("open landing page", err)
	}
	if err := page.Pause(ctx, cfg.LandingPause.Std()); err != nil {
		return selectionError("open landing page", err)
	}

	steps := []struct {
		name, id, label string
	}{
		{"select state", StateSelectID, c.State},
		{"select district", DistrictSelectID, c.District},
		{"select court complex", ComplexSelectID, c.Complex},
	}
	for _, s := range steps {
		if err := page.SelectOption(ctx, s.id, s.label); err != nil {
			return selectionError(s.name, err)
		}
		slog.Debug("selected", "dropdown", s.id, "label", s.label)
	}

	slog.Info("✓ court selected", "state", c.State, "district", c.District, "complex", c.Complex)
	return nil
}
