package preview

import (
	"net/url"
	"strings"
)

const dashParams = "part=index&format=dash&useScf=True&pretranscode=0&transcodeahead=0"

// Adapters 构造 SharePoint DASH 清单与 Office Online 预览地址。
type Adapters struct {
	DashHost     string
	OfficeViewer string
}

// DashManifest 由缩略图地址推导 DASH 清单地址。下载地址不属于 DashHost
// 或缺少缩略图时返回 false，调用方应回退为下载跳转。
func (a Adapters) DashManifest(download, thumb string) (string, bool) {
	if a.DashHost == "" || thumb == "" || !strings.Contains(download, a.DashHost) {
		return "", false
	}
	manifest := strings.ReplaceAll(thumb, "thumbnail", "videomanifest")
	sep := "&"
	if !strings.Contains(manifest, "?") {
		sep = "?"
	}
	return manifest + sep + dashParams, true
}

// OfficeViewerURL 返回在线查看 Office 文档的地址。
func (a Adapters) OfficeViewerURL(download string) string {
	return a.OfficeViewer + "?src=" + url.QueryEscape(download)
}
