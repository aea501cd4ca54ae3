// Command trafficctl is a small line-edited console that connects to a
// running trafficmim server's diagnostic socket (-ctl) and prints
// status, watched-path, and peer information on request. It is not on
// the record/replay critical path.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/peterh/liner"
)

func main() {
	sock := flag.String("ctl", "", "Unix socket of the trafficmim server to query")
	oneshot := flag.String("e", "", "send a single command and exit instead of starting the console")
	flag.Parse()

	if *sock == "" {
		fmt.Fprintln(os.Stderr, "trafficctl: -ctl is required")
		os.Exit(1)
	}

	if *oneshot != "" {
		reply, err := query(*sock, *oneshot)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(reply)
		return
	}

	console(*sock)
}

func console(sock string) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	fmt.Println("trafficctl - commands: status, watched, peer, quit")
	for {
		cmd, err := line.Prompt("trafficctl> ")
		if err != nil {
			return
		}
		cmd = strings.TrimSpace(cmd)
		if cmd == "" {
			continue
		}
		line.AppendHistory(cmd)
		if cmd == "quit" || cmd == "exit" {
			return
		}

		reply, err := query(sock, cmd)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		fmt.Println(reply)
	}
}

func query(sock, cmd string) (string, error) {
	conn, err := net.Dial("unix", sock)
	if err != nil {
		return "", fmt.Errorf("trafficctl: %w", err)
	}
	defer conn.Close()

	if _, err := fmt.Fprintln(conn, cmd); err != nil {
		return "", err
	}

	reply, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(reply, "\n"), nil
}
