// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package vpkg

// Fuzz is the go-fuzz entry point: it must detect corruption or
// truncation at any level without panicking on arbitrary input.
func Fuzz(data []byte) int {
	_, err := ParseVehiclePackage(data, nil)
	if err != nil {
		return 0
	}
	return 1
}
