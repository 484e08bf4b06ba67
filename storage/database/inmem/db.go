// Package inmemdb provides in-memory repositories for API tests.
package inmemdb

import (
	"sync"

	"github.com/google/uuid"

	"github.com/trezcool/malezi/core/activity"
	"github.com/trezcool/malezi/core/event"
	"github.com/trezcool/malezi/core/gamify"
	"github.com/trezcool/malezi/core/market"
	"github.com/trezcool/malezi/core/moderation"
	"github.com/trezcool/malezi/core/notification"
	"github.com/trezcool/malezi/core/user"
)

type DB struct {
	mutex sync.RWMutex

	users         map[string]*user.User
	blocks        map[string]*user.Block // key: blockerID + "/" + blockedID
	events        map[string]*event.Event
	reports       map[string]*moderation.Report
	stats         map[string]*gamify.Stats    // key: userID
	challenges    map[string]*gamify.Challenge
	progress      map[string]*gamify.Progress // key: userID + "/" + challengeID
	logs          map[string]*activity.Log
	routines      map[string]*activity.Routine
	items         map[string]*market.Item
	reviews       map[string]*market.Review // key: userID + "/" + itemID
	favorites     map[string]*market.Favorite
	notifications map[string]*notification.Notification // key: userID + "/" + tag
}

func NewDB() *DB {
	return &DB{
		users:         make(map[string]*user.User),
		blocks:        make(map[string]*user.Block),
		events:        make(map[string]*event.Event),
		reports:       make(map[string]*moderation.Report),
		stats:         make(map[string]*gamify.Stats),
		challenges:    make(map[string]*gamify.Challenge),
		progress:      make(map[string]*gamify.Progress),
		logs:          make(map[string]*activity.Log),
		routines:      make(map[string]*activity.Routine),
		items:         make(map[string]*market.Item),
		reviews:       make(map[string]*market.Review),
		favorites:     make(map[string]*market.Favorite),
		notifications: make(map[string]*notification.Notification),
	}
}

func newID() string { return uuid.New().String() }
