package framedump

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/danmuck/framectl/internal/protocol/frame"
)

func writeText(w io.Writer, f frame.Frame) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	c := f.Counts()

	fmt.Fprintf(tw, "frame\tts=%d\tclient=%d\topponent=%d\tmode=%d\tstate=%d\tscore=%d\tdifficulty=%d\n",
		f.Timestamp, f.ClientID, f.OpponentID, f.Mode, f.State, f.Score, f.Difficulty)
	fmt.Fprintf(tw, "stage\tid=%d\tname=%d\tstate=%d\tnext=%d\tts=%d\n",
		f.Stage.ID, f.Stage.Name, f.Stage.State, f.Stage.NextStage, f.Stage.Timestamp)
	fmt.Fprintf(tw, "counts\tplayers=%d\tenemies=%d\tbosses=%d\tbullets=%d\titems=%d\n",
		c.Players, c.Enemies, c.Bosses, c.Bullets, c.Items)

	if len(f.Players) > 0 {
		fmt.Fprintln(tw, "PLAYER\tNAME\tSTATE\tPOS\tVEL\tRADIUS\tANGLE\tSPELL\tLIVES\tBOMBS\tPOWER")
		for _, p := range f.Players {
			fmt.Fprintf(tw, "%d\t%d\t%d\t%s\t%s\t%g\t%g\t%d\t%d\t%d\t%d\n",
				p.ID, p.Name, p.State, vec(p.Pos.X, p.Pos.Y), vec(p.Vel.X, p.Vel.Y),
				p.Radius, p.Angle, p.CurrentSpell, p.Lives, p.Bombs, p.Power)
		}
	}
	if len(f.Enemies) > 0 {
		fmt.Fprintln(tw, "ENEMY\tNAME\tSTATE\tPATTERN\tPOS\tVEL\tRADIUS\tANGLE\tHEALTH")
		for _, e := range f.Enemies {
			fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%s\t%s\t%g\t%g\t%d\n",
				e.ID, e.Name, e.State, e.AttackPattern, vec(e.Pos.X, e.Pos.Y), vec(e.Vel.X, e.Vel.Y),
				e.Radius, e.Angle, e.Health)
		}
	}
	if len(f.Bosses) > 0 {
		fmt.Fprintln(tw, "BOSS\tNAME\tSTATE\tPATTERN\tPOS\tVEL\tRADIUS\tANGLE\tHEALTH\tSPELL\tPHASE")
		for _, b := range f.Bosses {
			fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%s\t%s\t%g\t%g\t%d\t%d\t%d\n",
				b.ID, b.Name, b.State, b.AttackPattern, vec(b.Pos.X, b.Pos.Y), vec(b.Vel.X, b.Vel.Y),
				b.Radius, b.Angle, b.Health, b.CurrentSpell, b.Phase)
		}
	}
	if len(f.Bullets) > 0 {
		fmt.Fprintln(tw, "BULLET\tNAME\tSTATE\tPATTERN\tOWNER\tPOS\tVEL\tRADIUS\tANGLE\tDAMAGE")
		for _, b := range f.Bullets {
			fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t%s\t%s\t%g\t%g\t%d\n",
				b.ID, b.Name, b.State, b.FlightPattern, b.Owner, vec(b.Pos.X, b.Pos.Y), vec(b.Vel.X, b.Vel.Y),
				b.Radius, b.Angle, b.Damage)
		}
	}
	if len(f.Items) > 0 {
		fmt.Fprintln(tw, "ITEM\tNAME\tSTATE\tPATTERN\tPOS\tVEL\tRADIUS\tANGLE\tSCORE")
		for _, it := range f.Items {
			fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%s\t%s\t%g\t%g\t%g\n",
				it.ID, it.Name, it.State, it.FlightPattern, vec(it.Pos.X, it.Pos.Y), vec(it.Vel.X, it.Vel.Y),
				it.Radius, it.Angle, it.Score)
		}
	}
	fmt.Fprintln(tw)
	return tw.Flush()
}

func vec(x, y float32) string {
	return fmt.Sprintf("(%g,%g)", x, y)
}
