package traffic

import (
	"github.com/traffic-mim/server/internal/config"
	"github.com/traffic-mim/server/internal/dial"
	"github.com/traffic-mim/server/internal/fileedit"
	"github.com/traffic-mim/server/internal/fileedit/editstore"
	"github.com/traffic-mim/server/internal/procreg"
)

// Context bundles everything a Message needs to reach its real
// destination: configuration, the process table, the outbound dialer,
// the file-edit tracker, and the small pieces of cross-message state
// (peer registration, in-process instance naming) that persist across
// the life of the server process.
type Context struct {
	Config *config.Config
	Procs  *procreg.Table
	Dialer dial.Dialer
	Edits  *fileedit.Tracker
	Store  editstore.Store // nil when -F/-f was not given

	Peer   *PeerRegistry
	InProc *InProcRegistry

	// Replaying is true while the orchestrator is serving a request from
	// the replay index rather than forwarding it live. The orchestrator
	// sets it per request and the diagnostic "status" reply reports it;
	// FileEdit and the file-edit tracker do not read it.
	Replaying bool
}
