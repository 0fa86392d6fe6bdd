// Command echo-client sends each stdin line to a UDP echo server and
// prints the reply.
//
// Grounded on original_source/examples/udp_echo_client.cpp: associate
// to the peer once, then write/read in a loop. This module does no DNS
// resolution, so the destination must be
// given as a literal IP; net.ParseIP does the parsing instead of a
// resolver.
//
// Author: momentics <momentics@gmail.com>
package main

import (
	"bufio"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"

	"github.com/momentics/netio/addr"
	"github.com/momentics/netio/socket"
)

const defaultPort = 7

func main() {
	if len(os.Args) != 2 && len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "usage: echo-client <ip> [port]")
		os.Exit(1)
	}

	ip := net.ParseIP(os.Args[1]).To4()
	if ip == nil {
		log.Fatalf("not an IPv4 literal: %s", os.Args[1])
	}
	port := uint16(defaultPort)
	if len(os.Args) == 3 {
		p, err := strconv.ParseUint(os.Args[2], 10, 16)
		if err != nil {
			log.Fatalf("bad port: %v", err)
		}
		port = uint16(p)
	}

	peer := addr.Endpoint{
		Addr: addr.NewV4([4]byte{ip[0], ip[1], ip[2], ip[3]}),
		Port: port,
	}

	sock, cond := socket.NewDatagram(addr.V4)
	if !cond.Ok() {
		log.Fatalf("create socket: %v", cond)
	}
	defer sock.Close()

	if cond := sock.Associate(peer); !cond.Ok() {
		log.Fatalf("associate: %v", cond)
	}

	scanner := bufio.NewScanner(os.Stdin)
	buf := make([]byte, 4096)
	fmt.Print("> ")
	for scanner.Scan() {
		line := scanner.Text()
		if _, cond := sock.Write([]byte(line), nil); !cond.Ok() {
			log.Fatalf("write: %v", cond)
		}
		reply, cond := sock.Read(len(line), buf)
		if !cond.Ok() {
			log.Fatalf("read: %v", cond)
		}
		fmt.Printf("< %s\n> ", reply)
	}
}
