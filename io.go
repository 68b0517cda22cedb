// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package vpkg

import (
	"io"
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// mmapCloser unmaps and closes the backing file on Close.
type mmapCloser struct {
	data mmap.MMap
	f    *os.File
}

func (c *mmapCloser) Close() error {
	if err := c.data.Unmap(); err != nil {
		_ = c.f.Close()
		return err
	}
	return c.f.Close()
}

// OpenVehiclePackage memory-maps the Vehicle Package at path and parses
// it. The returned io.Closer must be closed once the caller is done with
// the view; the view's firmware slices are backed by the mapping and are
// invalid after Close. The codec itself neither opens files nor speaks
// any wire protocol; this is the one read-back convenience built on top
// of it, for the common case of a package already written to disk.
func OpenVehiclePackage(path string, opts *Options) (VehicleView, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return VehicleView{}, nil, err
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		_ = f.Close()
		return VehicleView{}, nil, err
	}

	view, err := ParseVehiclePackage(data, opts)
	if err != nil {
		_ = data.Unmap()
		_ = f.Close()
		return VehicleView{}, nil, err
	}

	return view, &mmapCloser{data: data, f: f}, nil
}
