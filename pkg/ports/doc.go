/*
Package ports defines the driven ports (interfaces) for the motorpool core.

These interfaces decouple the fleet workflow engine from external
implementations, allowing it to work with different snapshot backends and
chat transports.

# Key Interfaces

  - SnapshotStore: Responsible for persisting and loading the full fleet
    snapshot (cars, shifts, admins) as one document.
  - Transport: The messaging collaborator the core requests outbound actions
    from (texts, media, selectable menus). The binding to a concrete chat
    network lives outside this module.
*/
package ports
