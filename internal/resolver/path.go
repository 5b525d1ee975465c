package resolver

import "strings"

// NormalizeQuery 去掉空段与 "."，按层级回退 ".."（不会越过账号根目录），
// 返回处理后的路径段。
func NormalizeQuery(query string) []string {
	segments := make([]string, 0)
	for _, seg := range strings.Split(query, "/") {
		switch seg {
		case "", ".":
		case "..":
			if len(segments) > 0 {
				segments = segments[:len(segments)-1]
			}
		default:
			segments = append(segments, seg)
		}
	}
	return segments
}

// JoinRoot 将账号 Root 与查询路径段拼接为 provider 使用的路径（无首尾斜杠）。
func JoinRoot(root string, segments []string) string {
	parts := make([]string, 0, len(segments)+1)
	for _, seg := range strings.Split(root, "/") {
		if seg != "" {
			parts = append(parts, seg)
		}
	}
	parts = append(parts, segments...)
	return strings.Join(parts, "/")
}
