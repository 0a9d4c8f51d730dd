package criteria

import (
	"github.com/agentgate/agentgate/service/dao"
)

// FilterByStatus evaluates list parameters against an entity status. With no
// parameters everything matches; a single "Status" parameter matches either
// one value or any of a value list.
func FilterByStatus(status string, parameters []*dao.Parameter) bool {
	switch len(parameters) {
	case 0:
		return true
	case 1:
		if parameters[0].Name == "Status" {
			switch actual := parameters[0].Value.(type) {
			case string:
				return status == actual
			case []string:
				for _, s := range actual {
					if status == s {
						return true
					}
				}
				return false
			}
		}
	}
	return true
}
