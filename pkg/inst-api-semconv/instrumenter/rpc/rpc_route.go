// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package rpc

import "strings"

// Route is the (service, method) pair addressed by an RPC route path.
type Route struct {
	Service string
	Method  string
}

// ParseRoute splits a route path of the form "/{service}/{method}".
//
// The method keeps everything after the first separator, including further
// slashes. A path that does not start with "/" or has no second "/" cannot be
// split: the service is empty and the method is the whole path. The bare root
// "/" is an empty route. Segments are used verbatim; nothing is decoded.
//
// For example "/helloworld.Greeter/SayHello" yields service "helloworld.Greeter"
// and method "SayHello".
func ParseRoute(path string) Route {
	if path == "/" {
		return Route{}
	}
	if !strings.HasPrefix(path, "/") {
		return Route{Method: path}
	}
	sep := strings.IndexByte(path[1:], '/')
	if sep < 0 {
		return Route{Method: path}
	}
	return Route{
		Service: path[1 : sep+1],
		Method:  path[sep+2:],
	}
}
