// Package store provides SnapshotStore backends: a single-file JSON store
// (the default) and a Redis store holding the same document under one key.
// Both share the codec in this file, so shape validation is identical
// regardless of the backend.
package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/motorpool/pkg/domain"
)

// Document layout. Car ids are the map keys (stringified positive integers),
// timestamps are RFC3339 so they sort lexicographically and survive a
// round-trip at second precision.
type assignmentDoc struct {
	DriverID   string `json:"driver_id" mapstructure:"driver_id"`
	DriverName string `json:"driver_name" mapstructure:"driver_name"`
	ShiftStart string `json:"shift_start" mapstructure:"shift_start"`
}

type carDoc struct {
	Description string         `json:"description" mapstructure:"description"`
	Assignment  *assignmentDoc `json:"assignment,omitempty" mapstructure:"assignment"`
}

type mediaDoc struct {
	Kind string `json:"kind" mapstructure:"kind"`
	Ref  string `json:"ref" mapstructure:"ref"`
}

type shiftDoc struct {
	DriverID       string     `json:"driver_id" mapstructure:"driver_id"`
	DriverName     string     `json:"driver_name" mapstructure:"driver_name"`
	CarID          int        `json:"car_id" mapstructure:"car_id"`
	CarDescription string     `json:"car_description" mapstructure:"car_description"`
	StartedAt      string     `json:"started_at" mapstructure:"started_at"`
	Media          []mediaDoc `json:"media" mapstructure:"media"`
}

type snapshotDoc struct {
	Cars   map[string]carDoc `json:"cars" mapstructure:"cars"`
	Shifts []shiftDoc        `json:"shifts" mapstructure:"shifts"`
	Admins []string          `json:"admins" mapstructure:"admins"`
}

// Encode serializes a snapshot into the canonical JSON document.
func Encode(snap domain.Snapshot) ([]byte, error) {
	doc := snapshotDoc{
		Cars:   make(map[string]carDoc, len(snap.Cars)),
		Shifts: make([]shiftDoc, 0, len(snap.Shifts)),
		Admins: snap.Admins,
	}
	if doc.Admins == nil {
		doc.Admins = []string{}
	}

	for _, car := range snap.Cars {
		if car.ID <= 0 {
			return nil, fmt.Errorf("car id %d is not a positive integer", car.ID)
		}
		cd := carDoc{Description: car.Description}
		if car.Assignment != nil {
			cd.Assignment = &assignmentDoc{
				DriverID:   car.Assignment.DriverID,
				DriverName: car.Assignment.DriverName,
				ShiftStart: car.Assignment.ShiftStart.Format(time.RFC3339),
			}
		}
		doc.Cars[strconv.Itoa(car.ID)] = cd
	}

	for _, shift := range snap.Shifts {
		sd := shiftDoc{
			DriverID:       shift.DriverID,
			DriverName:     shift.DriverName,
			CarID:          shift.CarID,
			CarDescription: shift.CarDescription,
			StartedAt:      shift.StartedAt.Format(time.RFC3339),
			Media:          make([]mediaDoc, 0, len(shift.Media)),
		}
		for _, m := range shift.Media {
			sd.Media = append(sd.Media, mediaDoc{Kind: string(m.Kind), Ref: m.Ref})
		}
		doc.Shifts = append(doc.Shifts, sd)
	}

	return json.MarshalIndent(doc, "", "  ")
}

// Decode parses and validates a snapshot document. The raw JSON is first
// unmarshalled loosely and then decoded through mapstructure with ErrorUnused
// so documents with unknown fields fail closed instead of silently losing
// data on the next overwrite.
func Decode(data []byte) (domain.Snapshot, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.Snapshot{}, fmt.Errorf("parse snapshot document: %w", err)
	}

	var doc snapshotDoc
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &doc,
		ErrorUnused: true,
	})
	if err != nil {
		return domain.Snapshot{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return domain.Snapshot{}, fmt.Errorf("invalid snapshot shape: %w", err)
	}

	snap := domain.NewSnapshot()

	ids := make([]int, 0, len(doc.Cars))
	byID := make(map[int]carDoc, len(doc.Cars))
	for key, cd := range doc.Cars {
		id, err := strconv.Atoi(key)
		if err != nil || id <= 0 {
			return domain.Snapshot{}, fmt.Errorf("car key %q is not a positive integer", key)
		}
		ids = append(ids, id)
		byID[id] = cd
	}
	sort.Ints(ids)
	for i, id := range ids {
		// Ids are assigned gap-free; a hole would make the next
		// registration collide with an existing car.
		if id != i+1 {
			return domain.Snapshot{}, fmt.Errorf("car ids are not contiguous from 1: missing %d", i+1)
		}
		cd := byID[id]
		car := domain.Car{ID: id, Description: cd.Description}
		if cd.Assignment != nil {
			start, err := parseTimestamp(cd.Assignment.ShiftStart)
			if err != nil {
				return domain.Snapshot{}, fmt.Errorf("car %d shift start: %w", id, err)
			}
			car.Assignment = &domain.Assignment{
				DriverID:   cd.Assignment.DriverID,
				DriverName: cd.Assignment.DriverName,
				ShiftStart: start,
			}
		}
		snap.Cars = append(snap.Cars, car)
	}

	for i, sd := range doc.Shifts {
		started, err := parseTimestamp(sd.StartedAt)
		if err != nil {
			return domain.Snapshot{}, fmt.Errorf("shift %d start time: %w", i, err)
		}
		shift := domain.Shift{
			DriverID:       sd.DriverID,
			DriverName:     sd.DriverName,
			CarID:          sd.CarID,
			CarDescription: sd.CarDescription,
			StartedAt:      started,
			Media:          make([]domain.MediaAttachment, 0, len(sd.Media)),
		}
		for _, m := range sd.Media {
			kind := domain.MediaKind(m.Kind)
			switch kind {
			case domain.MediaPhoto, domain.MediaVideo, domain.MediaDocument:
			default:
				return domain.Snapshot{}, fmt.Errorf("shift %d: unknown media kind %q", i, m.Kind)
			}
			shift.Media = append(shift.Media, domain.MediaAttachment{Kind: kind, Ref: m.Ref})
		}
		snap.Shifts = append(snap.Shifts, shift)
	}

	if doc.Admins != nil {
		snap.Admins = doc.Admins
	}

	return snap, nil
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q is not RFC3339: %w", s, err)
	}
	return t, nil
}
