/*
Package hellod3d draws the classic coloured triangle through Direct3D 11: a
Win32 window, a device and swap chain, two compiled shaders and a three
vertex buffer, with the views rebuilt every time the window is resized.

The package provides a command line interface. To check the supported flags type:

	$ hellod3d --help

On platforms without Direct3D the same scene is rendered by a software
rasterizer following the Direct3D rules, either in a preview window or into
an image file:

	package main

	import (
		"log"
		"os"

		"github.com/disintegration/imaging"
		"github.com/esimov/hellod3d"
	)

	func main() {
		cfg := hellod3d.DefaultConfig()
		if err := hellod3d.Snapshot(cfg, os.Stdout, imaging.PNG); err != nil {
			log.Fatalf("Error rendering the triangle: %s", err.Error())
		}
	}
*/
package hellod3d
