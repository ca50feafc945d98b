// Package shaders embeds the GLSL sources of every shading program. Paths
// inside FS are the default program source paths.
package shaders

import "embed"

//go:embed deferred/*.vert deferred/*.frag csm/*.vert csm/*.frag
var FS embed.FS
