// Package pathcache persists the association between production tracker
// entities and filesystem paths in a local SQLite database. The context
// resolution engine reads it to recover entities from paths and paths
// from entities; path creation tooling writes new mappings into it.
package pathcache
