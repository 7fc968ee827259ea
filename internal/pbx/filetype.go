package pbx

import (
	"path"
	"strings"
)

var fileTypes = map[string]string{
	".a":            "archive.ar",
	".app":          "wrapper.application",
	".appex":        "wrapper.app-extension",
	".c":            "sourcecode.c.c",
	".entitlements": "text.plist.entitlements",
	".framework":    "wrapper.framework",
	".h":            "sourcecode.c.h",
	".jpg":          "image.jpeg",
	".json":         "text.json",
	".m":            "sourcecode.c.objc",
	".mm":           "sourcecode.cpp.objcpp",
	".plist":        "text.plist.xml",
	".png":          "image.png",
	".storyboard":   "file.storyboard",
	".strings":      "text.plist.strings",
	".swift":        "sourcecode.swift",
	".xcassets":     "folder.assetcatalog",
	".xib":          "file.xib",
	".xcdatamodeld": "wrapper.xcdatamodel",
	".xcconfig":     "text.xcconfig",
	".dylib":        "compiled.mach-o.dylib",
	".tbd":          "sourcecode.text-based-dylib-definition",
	".bundle":       "wrapper.plug-in",
	".lproj":        "folder",
}

// FileTypeFor returns the lastKnownFileType Xcode assigns to a path, or
// "text" when the extension is unknown.
func FileTypeFor(p string) string {
	if t, ok := fileTypes[strings.ToLower(path.Ext(p))]; ok {
		return t
	}
	return "text"
}
