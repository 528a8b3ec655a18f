package mutator

import (
	"fmt"

	"github.com/jwebster45206/saga-engine/pkg/command"
	"github.com/jwebster45206/saga-engine/pkg/resolve"
	"github.com/jwebster45206/saga-engine/pkg/world"
)

func (m *Mutator) auctionStart(ws *world.State, cmd command.Command) (*world.State, []string, error) {
	if !ws.Config.Economy.AuctionsEnabled {
		return nil, nil, command.Skip(command.ErrDisabled, "Auctions are disabled in this world.")
	}
	if ws.Auction != nil {
		return nil, nil, command.Skip(command.ErrRejected, "An auction for %s is already running.", ws.Auction.ItemName)
	}
	bid := cmd.Args.Int("startingBid")
	if bid < 0 {
		return nil, nil, command.Skip(command.ErrRejected, "The starting bid cannot be negative.")
	}
	rounds := cmd.Args.Int("rounds")
	if rounds < 1 {
		rounds = 1
	}

	ws.Auction = &world.Auction{
		ItemName:    cleanName(cmd.Args.String("item")),
		StartingBid: bid,
		RoundsLeft:  rounds,
	}
	return ws, []string{fmt.Sprintf("Auction opened: %s, starting at %d linh thạch.", ws.Auction.ItemName, bid)}, nil
}

// auctionBid accepts the first bid at the starting price; later bids must
// beat the current one.
func (m *Mutator) auctionBid(ws *world.State, cmd command.Command) (*world.State, []string, error) {
	a := ws.Auction
	if a == nil {
		return nil, nil, command.Skip(command.ErrRejected, "There is no auction running.")
	}
	bid := cmd.Args.Int("amount")
	if a.HighestBidder == "" && bid < a.StartingBid {
		return nil, nil, command.Skip(command.ErrRejected, "Bids for %s start at %d.", a.ItemName, a.StartingBid)
	}
	if a.HighestBidder != "" && bid <= a.CurrentBid {
		return nil, nil, command.Skip(command.ErrRejected, "A bid of %d does not beat %d.", bid, a.CurrentBid)
	}

	bidder := cleanName(cmd.Args.String("bidder"))
	if isPlayer(bidder) {
		if bid > ws.Player.Stats.LinhThach {
			return nil, nil, command.Skip(command.ErrRejected, "You only have %d linh thạch.", ws.Player.Stats.LinhThach)
		}
		bidder = PlayerTarget
	} else if i, ok := m.findNPC(ws, bidder); ok {
		bidder = ws.NPCs[i].Name
	}

	a.CurrentBid = bid
	a.HighestBidder = bidder
	if bidder == PlayerTarget {
		return ws, []string{fmt.Sprintf("You bid %d for %s.", bid, a.ItemName)}, nil
	}
	return ws, []string{fmt.Sprintf("%s bids %d for %s.", bidder, bid, a.ItemName)}, nil
}

func (m *Mutator) auctionEnd(ws *world.State, _ command.Command) (*world.State, []string, error) {
	a := ws.Auction
	if a == nil {
		return nil, nil, command.Skip(command.ErrRejected, "There is no auction to close.")
	}
	ws.Auction = nil

	switch a.HighestBidder {
	case "":
		return ws, []string{fmt.Sprintf("The auction for %s closes without a sale.", a.ItemName)}, nil
	case PlayerTarget:
		ws.Player.Stats.LinhThach = max(ws.Player.Stats.LinhThach-a.CurrentBid, 0)
		if match, ok := resolve.Find(m.resolver, a.ItemName, ws.Inventory, nil); ok {
			ws.Inventory[match.Index].Quantity++
		} else {
			ws.Inventory = append(ws.Inventory, world.Item{ID: ws.NewID("item"), Name: a.ItemName, Quantity: 1, Value: a.CurrentBid})
		}
		return ws, []string{fmt.Sprintf("You win %s for %d linh thạch.", a.ItemName, a.CurrentBid)}, nil
	default:
		return ws, []string{fmt.Sprintf("%s wins %s for %d linh thạch.", a.HighestBidder, a.ItemName, a.CurrentBid)}, nil
	}
}
