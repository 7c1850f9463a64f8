package app

import (
	"github.com/vk/forgerun/extensions/netinfo"
	"github.com/vk/forgerun/extensions/tasklist"
	"github.com/vk/forgerun/internal/task"
)

// builtinExtensions returns the extension set used when the caller supplies
// none of its own.
func builtinExtensions() []task.Extension {
	return []task.Extension{
		tasklist.Extension{},
		netinfo.Extension{},
	}
}
