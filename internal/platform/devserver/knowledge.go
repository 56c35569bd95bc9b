package devserver

import (
	"sync"

	"github.com/synthfhir/synthfhir/pkg/contract"
)

// chunkSize is the number of document bytes counted as one indexed chunk.
const chunkSize = 1000

// knowledgeIndex simulates the RAG index: uploaded documents are kept per
// target and indexing counts their chunks. Nothing is embedded.
type knowledgeIndex struct {
	mu      sync.Mutex
	docs    map[string]map[string]int // target -> document name -> size
	indexed map[string]int            // target -> chunks
}

func newKnowledgeIndex() *knowledgeIndex {
	return &knowledgeIndex{
		docs:    map[string]map[string]int{},
		indexed: map[string]int{},
	}
}

func chunks(size int) int {
	if size <= 0 {
		return 1
	}
	return (size + chunkSize - 1) / chunkSize
}

// add stores a document under target, replacing one with the same name.
func (k *knowledgeIndex) add(target, name string, size int) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.docs[target] == nil {
		k.docs[target] = map[string]int{}
	}
	k.docs[target][name] = size
}

// index recounts the chunks of target. A resource target also indexes its
// DDL as one chunk.
func (k *knowledgeIndex) index(target string, withDDL bool) int {
	k.mu.Lock()
	defer k.mu.Unlock()
	n := 0
	if withDDL {
		n++
	}
	for _, size := range k.docs[target] {
		n += chunks(size)
	}
	k.indexed[target] = n
	return n
}

func (k *knowledgeIndex) status(cfg *contract.AppConfig) *contract.KnowledgeStatus {
	k.mu.Lock()
	defer k.mu.Unlock()
	out := &contract.KnowledgeStatus{Resources: map[contract.ResourceKind]contract.ResourceKnowledgeStatus{}}
	for _, n := range k.indexed {
		out.TotalDocuments += n
	}
	for _, kind := range cfg.EnabledResources {
		rc := cfg.Resources[kind]
		out.Resources[kind] = contract.ResourceKnowledgeStatus{
			DDLExists:       rc.DDLFile != "",
			KnowledgeExists: len(k.docs[string(kind)]) > 0,
			DocumentCount:   len(k.docs[string(kind)]),
		}
	}
	return out
}
