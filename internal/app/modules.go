package app

import (
	"github.com/vk/stringalong/internal/registry"
	"github.com/vk/stringalong/modules/http_request"
	"github.com/vk/stringalong/modules/print"
	"github.com/vk/stringalong/modules/socketio"
)

// coreModules is the definitive list of all sink modules that are compiled
// into the stringalong binary.
var coreModules = []registry.Module{
	&print.Module{},
	&http_request.Module{},
	&socketio.Module{},
}
