// Command kiln is a thin cobra CLI over internal/repo. It parses
// flags, resolves the working directory and authoring identity, and
// otherwise delegates every operation to internal/repo; no core
// package imports this one.
package main

func main() {
	Execute()
}
