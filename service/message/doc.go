// Package message implements blocking message exchange between processes:
// Send, Receive and Reply. Messages wait in a mailbox until a policy allows
// them to be handed to their target.
package message
