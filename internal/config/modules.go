package config

import (
	_ "github.com/any-index/any-index/internal/provider/onedrive"
	_ "github.com/any-index/any-index/internal/provider/s3"
)
