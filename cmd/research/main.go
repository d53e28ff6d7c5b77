// Command research runs, compares and inspects the research agents locally.
package main

func main() {
	Execute()
}
