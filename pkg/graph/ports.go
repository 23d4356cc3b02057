package graph

import (
	"fmt"
	"strconv"
	"strings"
)

// IndexedPort builds the target port ID for one slot of an array-valued
// field, e.g. IndexedPort("Inputs", 1) == "Inputs[1]".
func IndexedPort(field string, index int) string {
	return fmt.Sprintf("%s[%d]", field, index)
}

// SplitPort decomposes a target port ID into its field name and slot index.
// Plain ports return index -1. Malformed bracket suffixes are treated as
// plain port names rather than rejected; port IDs written by other tools may
// legally contain brackets.
func SplitPort(port string) (field string, index int) {
	if !strings.HasSuffix(port, "]") {
		return port, -1
	}
	open := strings.LastIndexByte(port, '[')
	if open <= 0 {
		return port, -1
	}
	n, err := strconv.Atoi(port[open+1 : len(port)-1])
	if err != nil || n < 0 {
		return port, -1
	}
	return port[:open], n
}
