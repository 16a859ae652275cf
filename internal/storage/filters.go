package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"estate_bot/internal/kv"
	"estate_bot/internal/model"
)

// filterRecord is the sparse persisted form of a filter; absent fields are defaults.
type filterRecord struct {
	Lang          model.Language      `json:"lang,omitempty"`
	Enabled       bool                `json:"enabled,omitempty"`
	Category      *model.Category     `json:"category,omitempty"`
	PropertyType  *model.PropertyType `json:"property_type,omitempty"`
	MinPrice      *int64              `json:"min_price,omitempty"`
	MaxPrice      *int64              `json:"max_price,omitempty"`
	MinUsableArea *int                `json:"min_usable_area,omitempty"`
	Layouts       []model.Layout      `json:"layouts,omitempty"`
	Districts     []int               `json:"districts,omitempty"`
}

// GetFilter returns the user's filter, or the default filter if none was saved.
func (s *Store) GetFilter(ctx context.Context, userID int64) (model.Filter, error) {
	f := model.Filter{UserID: userID, Lang: model.LangEN}

	raw, err := s.kv.Get(ctx, key("filters", userID))
	if errors.Is(err, kv.ErrNotFound) {
		return f, nil
	}
	if err != nil {
		return f, fmt.Errorf("get filter: %w", err)
	}

	var rec filterRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return f, fmt.Errorf("decode filter %d: %w", userID, err)
	}

	if rec.Lang != "" {
		f.Lang = rec.Lang
	}
	f.Enabled = rec.Enabled
	f.Category = rec.Category
	f.PropertyType = rec.PropertyType
	f.MinPrice = rec.MinPrice
	f.MaxPrice = rec.MaxPrice
	f.MinUsableArea = rec.MinUsableArea
	f.Layouts = rec.Layouts
	f.Districts = rec.Districts
	return f, nil
}

// UpdateFilter applies a partial update to the user's filter and returns the result.
func (s *Store) UpdateFilter(ctx context.Context, userID int64, upd model.FilterUpdate) (model.Filter, error) {
	f, err := s.GetFilter(ctx, userID)
	if err != nil {
		return f, err
	}

	applyUpdate(&f, upd)

	rec := filterRecord{
		Lang:          f.Lang,
		Enabled:       f.Enabled,
		Category:      f.Category,
		PropertyType:  f.PropertyType,
		MinPrice:      f.MinPrice,
		MaxPrice:      f.MaxPrice,
		MinUsableArea: f.MinUsableArea,
		Layouts:       f.Layouts,
		Districts:     f.Districts,
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return f, fmt.Errorf("encode filter: %w", err)
	}
	if err := s.kv.Set(ctx, key("filters", userID), string(raw), 0); err != nil {
		return f, fmt.Errorf("save filter: %w", err)
	}
	return f, nil
}

func applyUpdate(f *model.Filter, upd model.FilterUpdate) {
	if upd.Lang != nil {
		f.Lang = *upd.Lang
	}
	if upd.Enabled != nil {
		f.Enabled = *upd.Enabled
	}

	if upd.ClearCategory {
		f.Category = nil
	} else if upd.Category != nil {
		f.Category = upd.Category
	}
	if upd.ClearPropertyType {
		f.PropertyType = nil
	} else if upd.PropertyType != nil {
		f.PropertyType = upd.PropertyType
	}
	if upd.ClearMinPrice {
		f.MinPrice = nil
	} else if upd.MinPrice != nil {
		f.MinPrice = upd.MinPrice
	}
	if upd.ClearMaxPrice {
		f.MaxPrice = nil
	} else if upd.MaxPrice != nil {
		f.MaxPrice = upd.MaxPrice
	}
	if upd.ClearMinUsableArea {
		f.MinUsableArea = nil
	} else if upd.MinUsableArea != nil {
		f.MinUsableArea = upd.MinUsableArea
	}
	if upd.ClearLayouts {
		f.Layouts = nil
	} else if upd.Layouts != nil {
		f.Layouts = upd.Layouts
	}
	if upd.ClearDistricts {
		f.Districts = nil
	} else if upd.Districts != nil {
		f.Districts = upd.Districts
	}
}
