package utils

import (
	"strconv"
	"strings"
)

func BuildUsersListCacheKey(limit int, emailFilter, cursor string) string {
	e := strings.ToLower(strings.TrimSpace(emailFilter))

	return "users:list:v1:limit=" + strconv.Itoa(limit) +
		":email=" + e +
		":cursor=" + cursor
}
