// Command udlcoach runs the UDL assessment coach as an HTTP service, an MCP
// server or an interactive terminal chat.
package main

func main() {
	Execute()
}
