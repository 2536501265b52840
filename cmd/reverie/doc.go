// Command reverie manages the story scene queue from a terminal.
//
// Each invocation loads configuration, hydrates the scene queue from the
// configured store, performs one operation (add, list, remove, clear, or
// compile), and exits. The queue persists between invocations, so a sequence
// of "reverie scenes add" calls followed by "reverie scenes compile" builds and
// submits a story.
package main
