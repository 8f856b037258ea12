package tabs

import (
	"testing"

	"github.com/entrhq/pagekit/pkg/dom"
	"github.com/entrhq/pagekit/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userDetail = `<nav>
<button class="tab-button" id="tab-profile"><span id="profile-label">Profile</span></button>
<button class="tab-button" id="tab-activity">Activity</button>
</nav>
<div class="tab-content" id="content-profile">profile</div>
<div class="tab-content hidden" id="content-activity">activity</div>`

func TestSwitcher(t *testing.T) {
	doc := dom.MustParse(userDetail)
	var events []*types.UIEvent
	s := NewSwitcher(doc, func(e *types.UIEvent) { events = append(events, e) })

	assert.Equal(t, "profile", s.Init())
	assert.False(t, doc.ByID("content-profile").HasClass(HiddenClass))
	assert.True(t, doc.ByID("content-activity").HasClass(HiddenClass))
	assert.True(t, doc.ByID("tab-profile").HasClass("border-blue-500"))
	assert.True(t, doc.ByID("tab-activity").HasClass("border-transparent"))

	s.Switch("activity")
	assert.Equal(t, "activity", s.Active())
	assert.True(t, doc.ByID("content-profile").HasClass(HiddenClass))
	assert.False(t, doc.ByID("content-activity").HasClass(HiddenClass))
	assert.False(t, doc.ByID("tab-profile").HasClass("border-blue-500"))
	assert.True(t, doc.ByID("tab-activity").HasClass("text-blue-600"))

	s.Switch("activity")
	require.Len(t, events, 2, "re-selecting the active tab emits nothing")
	assert.Equal(t, types.EventTypeTabSwitch, events[1].Type)
}

func TestSwitcher_HandleClick(t *testing.T) {
	doc := dom.MustParse(userDetail)
	s := NewSwitcher(doc, nil)
	s.Init()
	s.Switch("activity")

	assert.True(t, s.HandleClick(doc.ByID("profile-label")))
	assert.Equal(t, "profile", s.Active())
	assert.False(t, s.HandleClick(doc.ByID("content-profile")))
}

func TestSwitch_UnknownHidesAll(t *testing.T) {
	doc := dom.MustParse(userDetail)
	Switch(doc, "missing")
	for _, c := range doc.QueryClass(ContentClass) {
		assert.True(t, c.HasClass(HiddenClass))
	}
}

func TestInit_NoTabs(t *testing.T) {
	assert.Equal(t, "", Init(dom.MustParse(`<p>none</p>`)))
}
