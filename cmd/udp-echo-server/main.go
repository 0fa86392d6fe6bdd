// Command udp-echo-server listens on a UDP port and echoes every
// datagram back to its sender.
//
// Grounded on original_source/examples/udp_echo_server.cpp: same
// read-log-write-log loop, same fixed-size datagram buffer.
//
// Author: momentics <momentics@gmail.com>
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/momentics/netio/addr"
	"github.com/momentics/netio/socket"
)

const maxDatagramSize = 512

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: udp-echo-server <port>")
		os.Exit(1)
	}
	port, err := strconv.ParseUint(os.Args[1], 10, 16)
	if err != nil {
		log.Fatalf("bad port: %v", err)
	}

	sock, cond := socket.NewDatagram(addr.V4)
	if !cond.Ok() {
		log.Fatalf("create socket: %v", cond)
	}
	defer sock.Close()

	if cond := sock.Bind(addr.Any4, uint16(port)); !cond.Ok() {
		log.Fatalf("bind: %v", cond)
	}
	log.Printf("listening on port %d", port)

	buf := make([]byte, maxDatagramSize)
	for {
		from, n, cond := sock.Raw().ReceiveFrom(buf)
		if !cond.Ok() {
			log.Printf("read error: %v", cond)
			continue
		}
		datagram := buf[:n]
		o := from.Addr.Octets()
		log.Printf("%d.%d.%d.%d:%d > %s", o[0], o[1], o[2], o[3], from.Port, datagram)

		if _, cond := sock.Write(datagram, &from); !cond.Ok() {
			log.Printf("write error: %v", cond)
			continue
		}
		log.Printf("%d.%d.%d.%d:%d < %s", o[0], o[1], o[2], o[3], from.Port, datagram)
	}
}
