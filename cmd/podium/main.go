// Command podium runs streamed debates between AI agents.
package main

func main() {
	Execute()
}
