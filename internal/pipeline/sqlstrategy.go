// Copyright (c) 2025-2026, the WikiPrism contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package pipeline

import (
	"os"

	"github.com/pkg/errors"
)

// SqlStrategy extends Strategy with the hook an orchestrator running
// against a SQLite-backed dictionary needs: a target path to publish the
// database to once every term has been written successfully.
type SqlStrategy[T any] interface {
	Strategy[T]

	// TargetDBPath is where the finished database should end up.
	TargetDBPath() string
}

// BaseSqlStrategy implements PerformLastSuccessfulSteps by promoting a
// work-in-progress database file to its target path, so a reader never
// observes a partially-written database at the target location. It
// already embeds BaseStrategy; embed it alone in a concrete SqlStrategy.
type BaseSqlStrategy[T any] struct {
	BaseStrategy[T]

	// WorkDBPath is the path the dictionary actually writes to while the
	// run is in progress.
	WorkDBPath string

	targetDBPath string
}

// NewBaseSqlStrategy builds a BaseSqlStrategy that will promote WorkDBPath
// to targetDBPath once the run finishes successfully.
func NewBaseSqlStrategy[T any](workDBPath, targetDBPath string) BaseSqlStrategy[T] {
	return BaseSqlStrategy[T]{WorkDBPath: workDBPath, targetDBPath: targetDBPath}
}

func (s *BaseSqlStrategy[T]) TargetDBPath() string {
	return s.targetDBPath
}

// PerformLastSuccessfulSteps renames WorkDBPath to TargetDBPath. When the
// rename fails (e.g. the two paths live on different filesystems), it
// copies the work database to a temporary file beside the target, renames
// that into place, and removes WorkDBPath.
func (s *BaseSqlStrategy[T]) PerformLastSuccessfulSteps() error {
	if err := os.Rename(s.WorkDBPath, s.targetDBPath); err == nil {
		return nil
	}

	data, err := os.ReadFile(s.WorkDBPath)
	if err != nil {
		return errors.Wrap(err, "read work database")
	}
	tmpPath := s.targetDBPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return errors.Wrap(err, "write target database")
	}
	if err := os.Rename(tmpPath, s.targetDBPath); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrap(err, "promote target database")
	}
	return os.Remove(s.WorkDBPath)
}
