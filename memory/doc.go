// Package memory provides minimal transcript persistence.
//
// Persistence model:
//   - Only text messages are stored (role + text). Tool blocks are transient.
//   - A saved transcript can seed a fresh history on the next session.
package memory
