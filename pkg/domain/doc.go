/*
Package domain contains the core models of the docflows workflow engine.

It defines the immutable description of a process (States, Transitions and the
Definition that binds them to an initial state), the append-only History of an
entity, the events emitted while a transition executes and the typed errors the
engine reports. The package is kept free of I/O so that definitions can be
declared in code, decoded from documents or shared across any number of
running instances.

# Key Entities

  - State: a named node of a workflow with a display title.
  - Transition: a named edge from one or more source states to a single target,
    optionally gated by a GuardPolicy.
  - Definition: the validated, read-only set of states and transitions plus the
    initial state. Built with NewDefinition.
  - History: the audit trail of successful transitions ("<actor>: <transition>").
  - Event: the structured record handed to observers around each transition.
*/
package domain
