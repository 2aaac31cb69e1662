// Package wire implements the text line protocol spoken by the E4
// streaming server.
//
// All traffic is newline-terminated ASCII. Client commands are sent as
//
//	<COMMAND> <ARGUMENT_LIST>\r\n
//
// for example:
//
//	device_subscribe gsr ON
//
// Server replies are prefixed with "R":
//
//	R device_subscribe acc OK
//	R device_connect_btle ERR could not connect device over BTLE
//
// and streaming data lines carry a stream prefix, a timestamp in
// floating-point seconds, and one or more sample values:
//
//	E4_Gsr 123345627891.123 3.129
//
// Decoding is total: any line that does not match a known reply or
// stream shape decodes to Unknown instead of failing, so a single
// noisy line can never take down the receive loop.
package wire
