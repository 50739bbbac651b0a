// Inemuri CLI tool inspects the transition traces recorded by hibernating
// display pipelines.
package main

func main() {
	Execute()
}
