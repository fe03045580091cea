// Copyright (c) 2025-2026, the WikiPrism contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"os"

	"github.com/rs/zerolog/log"
)

func main() {
	if err := RootCommand().Execute(); err != nil {
		log.Error().Err(err).Msg("wikiprism exited with an error")
		os.Exit(1)
	}
}
