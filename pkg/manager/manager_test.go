package manager

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recorder struct{ events []string }

type fakeResource struct {
	name string
	rec  *recorder
}

func (r *fakeResource) MustOpen() { r.rec.events = append(r.rec.events, "open:"+r.name) }
func (r *fakeResource) Close()    { r.rec.events = append(r.rec.events, "close:"+r.name) }

type fakeResourcePlugin struct{ res *fakeResource }

func (p *fakeResourcePlugin) Name() string                 { return p.res.name }
func (p *fakeResourcePlugin) MustCreateResource() Resource { return p.res }

type fakeComponent struct {
	rec *recorder
}

func (c *fakeComponent) Start() error    { c.rec.events = append(c.rec.events, "start"); return nil }
func (c *fakeComponent) Stop() error     { c.rec.events = append(c.rec.events, "stop"); return nil }
func (c *fakeComponent) GetName() string { return "fake" }

type fakeComponentPlugin struct{ comp *fakeComponent }

func (p *fakeComponentPlugin) Name() string { return "fake" }
func (p *fakeComponentPlugin) MustCreateComponent(*Dependencies) Component {
	return p.comp
}

func TestLifecycleOrder(t *testing.T) {
	rec := &recorder{}
	RegisterResourcePlugin(&fakeResourcePlugin{res: &fakeResource{name: "db", rec: rec}})
	RegisterResourcePlugin(&fakeResourcePlugin{res: &fakeResource{name: "cache", rec: rec}})
	RegisterComponentPlugin(&fakeComponentPlugin{comp: &fakeComponent{rec: rec}})

	MustInitResources()
	MustInitComponents(&Dependencies{})
	Shutdown()
	CloseResources()

	assert.Equal(t, []string{"open:db", "open:cache", "start", "stop", "close:cache", "close:db"}, rec.events)
}
