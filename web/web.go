// Package web 内嵌前端单页，构建产物里不需要额外的静态文件目录
package web

import "embed"

//go:embed index.html
var FS embed.FS
