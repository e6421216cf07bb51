package criteria

import (
	"github.com/viant/procsim/model"
	"github.com/viant/procsim/service/dao"
)

// FilterByState returns true if state satisfies the "State" parameter, or if
// no such parameter is given.
func FilterByState(state model.State, parameters []*dao.Parameter) bool {
	for _, parameter := range parameters {
		if parameter.Name != "State" {
			continue
		}
		switch actual := parameter.Value.(type) {
		case model.State:
			return state == actual
		case []model.State:
			for _, s := range actual {
				if state == s {
					return true
				}
			}
			return false
		}
	}
	return true
}

// FilterByPriority returns true if priority satisfies the "Priority"
// parameter, or if no such parameter is given.
func FilterByPriority(priority model.Priority, parameters []*dao.Parameter) bool {
	for _, parameter := range parameters {
		if parameter.Name != "Priority" {
			continue
		}
		switch actual := parameter.Value.(type) {
		case model.Priority:
			return priority == actual
		case []model.Priority:
			for _, p := range actual {
				if priority == p {
					return true
				}
			}
			return false
		}
	}
	return true
}
