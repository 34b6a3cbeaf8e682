// Package clientip extracts the originating client IP address from HTTP
// requests, looking through common proxy headers before falling back to the
// connection's remote address.
//
// The returned address is normalized via net.ParseIP so that equivalent
// textual representations compare equal. An empty string is returned when no
// valid address can be determined.
//
// # Usage
//
//	ip := clientip.GetIP(r)
//	if ip == "" {
//	    // no usable source address
//	}
package clientip
