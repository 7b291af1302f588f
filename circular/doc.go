// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package circular provides NextExp2, a sizing helper for growable
// circular buffers such as the command ring used by package transcode.
package circular
