package logging

import "github.com/sirupsen/logrus"

// BaseFields 构建 action + 配置路径等基础字段，便于不同入口复用。
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
	}
}

// RequestFields 提供账号/hash/路径字段，供浏览请求日志复用。
func RequestFields(accountID int, hash, path string) logrus.Fields {
	return logrus.Fields{
		"account_id": accountID,
		"hash":       hash,
		"path":       path,
	}
}

// CacheFields 描述一次缓存访问。
func CacheFields(namespace, key string, hit bool) logrus.Fields {
	return logrus.Fields{
		"action":    "cache_lookup",
		"namespace": namespace,
		"cache_key": key,
		"cache_hit": hit,
	}
}
