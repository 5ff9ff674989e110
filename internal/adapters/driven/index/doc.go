// Package index holds the vector index adapters the chain retrieves from.
//
// Each subpackage implements driven.VectorIndex over one backend:
// pinecone (hosted, REST), weaviate (GraphQL nearVector) and memory
// (brute-force cosine, for tests and offline demos).
package index
