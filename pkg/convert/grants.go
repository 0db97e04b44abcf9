package convert

import (
	"github.com/stgreenb/FSF/internal/utils"
	"github.com/stgreenb/FSF/pkg/compendium"
	"github.com/stgreenb/FSF/pkg/foundry"
	"github.com/tidwall/gjson"
)

// expandGrants attaches every ability reachable through the item's itemGrant
// advancements, recursively. Granted items are forced to the ability type
// because grant pools only carry abilities. The visited set breaks reference
// cycles between compendium documents; pass a fresh map per expansion root.
// Duplicate appends across roots are suppressed by the actor, and a grant
// that was already attached is not expanded again.
func (c *Converter) expandGrants(actor *foundry.Actor, item *foundry.Item, visited map[string]bool) {
	c.walkGrantPools(item, func(uuid string) {
		if visited[uuid] {
			utils.Log.Debugf("grant cycle detected at %s, skipping", uuid)
			return
		}
		visited[uuid] = true

		entry := c.catalog.ResolvePoolRef(uuid)
		if entry == nil {
			utils.Log.Debugf("grant reference %s not in catalog", uuid)
			return
		}
		granted := c.grantedItem(entry)
		if granted == nil {
			return
		}
		if !actor.AddItem(granted) {
			return
		}
		c.expandGrants(actor, granted, visited)
	})
}

// expandChoiceGrants is expandGrants restricted to pool entries whose
// resolved name is in the selected set — used when the source document
// records which of a trait's options the player actually took.
func (c *Converter) expandChoiceGrants(actor *foundry.Actor, item *foundry.Item, selectedNames map[string]bool) {
	c.walkGrantPools(item, func(uuid string) {
		entry := c.catalog.ResolvePoolRef(uuid)
		if entry == nil || !selectedNames[entry.Name] {
			return
		}
		if granted := c.grantedItem(entry); granted != nil {
			actor.AddItem(granted)
		}
	})
}

// grantedItem copies a pool entry as an ability item. The copy's action type
// is mapped to the target vocabulary: non-ability pool entries keep their
// original casing in the catalog, and the retype alone would leave values
// like "Triggered Action" behind.
func (c *Converter) grantedItem(entry *compendium.Entry) *foundry.Item {
	granted := foundry.NewItem(entry.Raw)
	if err := granted.Set("type", "ability"); err != nil {
		utils.Log.Warnf("could not retype granted item %q: %v", entry.Name, err)
		return nil
	}
	if st := granted.SystemType(); st != "" {
		if err := granted.Set("system.type", c.mapActionType(st)); err != nil {
			utils.Log.Warnf("could not normalize action type of granted item %q: %v", entry.Name, err)
			return nil
		}
	}
	return granted
}

func (c *Converter) walkGrantPools(item *foundry.Item, visit func(uuid string)) {
	advancements := item.Get("system.advancements")
	if !advancements.Exists() {
		return
	}
	advancements.ForEach(func(_, adv gjson.Result) bool {
		if adv.Get("type").Str != "itemGrant" {
			return true
		}
		adv.Get("pool").ForEach(func(_, pool gjson.Result) bool {
			if uuid := pool.Get("uuid").Str; uuid != "" {
				visit(uuid)
			}
			return true
		})
		return true
	})
}
