package util

import (
	"fmt"
	"strconv"
)

// ParseID 解析路径中的正整数 id
func ParseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
