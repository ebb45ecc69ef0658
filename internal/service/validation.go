package service

import (
	"errors"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation"
)

// fieldDetails flattens ozzo field errors into "field: reason" lines in a
// stable order.
func fieldDetails(err error) []string {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return nil
	}
	keys := make([]string, 0, len(verrs))
	for k := range verrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+": "+verrs[k].Error())
	}
	return out
}
