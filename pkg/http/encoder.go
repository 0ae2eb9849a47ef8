package http

// AppendResponseHead serializes a response head to HTTP/1.1 wire format.
// It appends "HTTP/1.1 STATUS REASON\r\n", every header in Headers order
// (most recently introduced first) and the empty line that ends the head.
func AppendResponseHead(buf []byte, statusCode int, reason string, headers *Headers) []byte {
	buf = appendStatusLine(buf, "HTTP/1.1", statusCode, reason)
	buf = appendHeaders(buf, headers)
	return appendCRLF(buf) // empty line before body
}

// appendHeaders appends all headers in "Key: Value\r\n" format.
func appendHeaders(buf []byte, headers *Headers) []byte {
	headers.Range(func(key, value string) bool {
		buf = append(buf, key...)
		buf = append(buf, ':', ' ')
		buf = append(buf, value...)
		buf = appendCRLF(buf)
		return true
	})
	return buf
}
