// Copyright (C) 2026  Gcodeopt Authors
//
// This file may be distributed under the terms of the GNU GPLv3 license.

//go:build !unix

package optimize

func openFileLimit() (uint64, bool) {
	return 0, false
}
