package app

import (
	"github.com/vk/traingrid/internal/registry"
	"github.com/vk/traingrid/modules/export"
	"github.com/vk/traingrid/modules/infer"
	"github.com/vk/traingrid/modules/patch"
	"github.com/vk/traingrid/modules/train"
)

// coreModules is the definitive list of all step modules that are compiled
// into the traingrid binary.
var coreModules = []registry.Module{
	&patch.Module{},
	&train.Module{},
	&export.Module{},
	&infer.Module{},
}
