// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor implements a single-threaded, cooperative, readiness-
// driven event loop on top of package selector.
package reactor
