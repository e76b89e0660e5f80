package votes

import "github.com/latticedag/consensus/dag"

// Metadata, DAG and Guard are the dag package's generic types instantiated
// for this domain's vote type, so downstream packages don't have to spell
// out dag.BlockMetadata[*Vote] everywhere.
type (
	Metadata = dag.BlockMetadata[*Vote]
	DAG      = dag.DAG[*Vote]
	Guard    = dag.ResourceGuard[*Vote]
)

// NewDAG constructs a DAG of this domain's vote type.
var NewDAG = dag.New[*Vote]
