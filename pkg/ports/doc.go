/*
Package ports defines the driven ports (interfaces) of the docflows engine.

These interfaces decouple the workflow core from the places specifications come
from and the sinks engine events go to.

# Key Interfaces

  - SpecSource: Provides the serialized workflow and check documents (file, memory, Redis).
  - SpecPublisher: Stores serialized documents so that other processes can load them.
  - Observer: Receives a structured Event for every step of a transition.
*/
package ports
