package knowledge

import (
	"fmt"

	"github.com/synthfhir/synthfhir/pkg/contract"
)

// ActivityKind names what the knowledge screen is doing.
type ActivityKind int

const (
	KindIdle ActivityKind = iota
	KindIndexing
	KindIndexingAll
	KindUploading
)

// Activity is the single in-flight operation of the knowledge screen. The
// zero value is Idle. Only the constructors below build non-idle values, so
// an activity never carries a resource it does not use.
type Activity struct {
	kind     ActivityKind
	resource contract.ResourceKind
	target   contract.UploadTarget
}

func Idle() Activity { return Activity{} }

func Indexing(kind contract.ResourceKind) Activity {
	return Activity{kind: KindIndexing, resource: kind}
}

func IndexingAll() Activity { return Activity{kind: KindIndexingAll} }

func Uploading(target contract.UploadTarget) Activity {
	return Activity{kind: KindUploading, target: target}
}

func (a Activity) Kind() ActivityKind { return a.kind }

func (a Activity) IsIdle() bool { return a.kind == KindIdle }

// Resource returns the resource being indexed; ok is false for any other
// activity.
func (a Activity) Resource() (kind contract.ResourceKind, ok bool) {
	return a.resource, a.kind == KindIndexing
}

// Target returns the upload target; ok is false unless uploading.
func (a Activity) Target() (target contract.UploadTarget, ok bool) {
	return a.target, a.kind == KindUploading
}

func (a Activity) String() string {
	switch a.kind {
	case KindIdle:
		return "idle"
	case KindIndexing:
		return fmt.Sprintf("indexing %s", a.resource)
	case KindIndexingAll:
		return "indexing all"
	case KindUploading:
		return fmt.Sprintf("uploading to %s", a.target)
	}
	return "unknown"
}
