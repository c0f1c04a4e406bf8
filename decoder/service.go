package decoder

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// discoveryPrefix is the UDP broadcast a client sends to find a decoder
// instance; the reply is a new TCP callback carrying "<ip>:<port>" (§5
// discovery protocol).
const discoveryPrefix = "RequestServerForGesture:"

// Service runs the UDP discovery responder and TCP decoder listener side
// by side under one cancellation scope (§5).
type Service struct {
	Lexicon  *Bank
	Commands *Bank
	Keyboard *Keyboard
	Unigram  *Unigram
	Bigram   *Bigram
	Neural   *Neural
	Sessions *SessionRegistry

	DiscoveryPort int
	DecoderPort   int
	ReadDeadline  time.Duration
	TopKLexicon   int
	TopKCommand   int
}

// Run starts both listeners and blocks until ctx is canceled or either
// listener fails irrecoverably, then tears both down (§5 graceful
// shutdown). A StartupError (failure to bind a socket) is returned
// directly rather than logged-and-continued; callers are expected to treat
// it as fatal.
func (s *Service) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	udpConn, err := net.ListenPacket("udp", fmt.Sprintf(":%d", s.DiscoveryPort))
	if err != nil {
		return fmt.Errorf("decoder: binding discovery socket: %w", err)
	}
	tcpListener, err := net.Listen("tcp", fmt.Sprintf(":%d", s.DecoderPort))
	if err != nil {
		udpConn.Close()
		return fmt.Errorf("decoder: binding decoder socket: %w", err)
	}

	g.Go(func() error {
		<-ctx.Done()
		udpConn.Close()
		tcpListener.Close()
		return nil
	})
	g.Go(func() error {
		return s.serveDiscovery(udpConn)
	})
	g.Go(func() error {
		return s.serveDecoder(ctx, tcpListener)
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func (s *Service) serveDiscovery(conn net.PacketConn) error {
	buf := make([]byte, 1024)
	for {
		n, addr, err := conn.ReadFrom(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Printf("discovery: read error: %v", err)
			continue
		}
		msg := string(buf[:n])
		if !strings.HasPrefix(msg, discoveryPrefix) {
			continue
		}
		portStr := strings.TrimPrefix(msg, discoveryPrefix)
		callbackPort, err := strconv.Atoi(strings.TrimSpace(portStr))
		if err != nil {
			log.Printf("discovery: malformed request from %s: %q", addr, msg)
			continue
		}

		host, _, err := net.SplitHostPort(addr.String())
		if err != nil {
			host = addr.String()
		}

		if err := s.replyDiscovery(host, callbackPort); err != nil {
			log.Printf("discovery: replying to %s: %v", addr, err)
		}
	}
}

func (s *Service) replyDiscovery(host string, callbackPort int) error {
	cb, err := net.DialTimeout("tcp", fmt.Sprintf("%s:%d", host, callbackPort), 2*time.Second)
	if err != nil {
		return fmt.Errorf("%w: dialing callback: %v", ErrTransientNetwork, err)
	}
	defer cb.Close()

	serverIP := host
	if local, ok := cb.LocalAddr().(*net.TCPAddr); ok {
		serverIP = local.IP.String()
	}
	_, err = fmt.Fprintf(cb, "%s:%d\n", serverIP, s.DecoderPort)
	return err
}

func (s *Service) serveDecoder(ctx context.Context, l net.Listener) error {
	for {
		conn, err := l.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Printf("decoder: accept error: %v", err)
			continue
		}
		go s.handleConnection(ctx, conn)
	}
}

// request is the JSON envelope a decoder connection carries: the fields the
// decoder reads across TASK types. Other fields a client sends
// (ORIENTATIONS, TIMESTAMPS, VELOCITIES) are ignored by the decoder. Point
// arrays arrive as bracketed strings (e.g. "[1,2,3]") rather than native
// JSON arrays, so they're unmarshaled as strings and parsed separately
// (§6 wire protocol).
type request struct {
	Task      string   `json:"TASK"`
	XPoints   string   `json:"XPOINTS"`
	YPoints   string   `json:"YPOINTS"`
	Port      int      `json:"PORT"`
	CurWord   string   `json:"CUR_WORD"`
	PrevWord  string   `json:"PREV_WORD"`
	PrevText  string   `json:"PREV_TEXT"`
	UndoWords []string `json:"UNDO_WORDS"`
}

type response struct {
	ResultWords  []string  `json:"RESULT_WORDS"`
	ResultScores []float64 `json:"RESULT_SCORES"`
}

func (s *Service) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	if s.ReadDeadline > 0 {
		conn.SetReadDeadline(time.Now().Add(s.ReadDeadline))
	}

	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		host = conn.RemoteAddr().String()
	}

	var req request
	if err := json.NewDecoder(bufio.NewReader(conn)).Decode(&req); err != nil {
		log.Printf("decoder: %s: %v", host, fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}

	sess := s.Sessions.Get(host)

	switch strings.ToUpper(req.Task) {
	case "DECODE":
		s.handleDecode(host, req, sess, s.Lexicon, s.TopKLexicon)
	case "CMD_DECODE":
		s.handleDecode(host, req, sess, s.Commands, s.TopKCommand)
	case "CONFIRM":
		if err := sess.Confirm(req.CurWord, s.Keyboard); err != nil {
			log.Printf("decoder: %s: %v", host, err)
		}
	case "UNDO":
		sess.Undo()
	default:
		log.Printf("decoder: %s: %v: unknown TASK %q", host, ErrBadRequest, req.Task)
	}
}

func (s *Service) handleDecode(host string, req request, sess *State, bank *Bank, topK int) {
	xs, err := parsePointList(req.XPoints)
	if err != nil {
		log.Printf("decoder: %s: %v: %v", host, ErrBadRequest, err)
		return
	}
	ys, err := parsePointList(req.YPoints)
	if err != nil {
		log.Printf("decoder: %s: %v: %v", host, ErrBadRequest, err)
		return
	}
	if len(xs) != len(ys) || len(xs) == 0 {
		log.Printf("decoder: %s: %v: xpoints/ypoints length mismatch", host, ErrBadRequest)
		return
	}

	raw := RawStroke{X: xs, Y: ys}
	sampled, err := Resample(xs, ys, SamplePoints)
	if err != nil {
		log.Printf("decoder: %s: %v: %v", host, ErrBadRequest, err)
		return
	}
	normal := Normalize(sampled, NormalizeRange)

	lwX, lwY, err := ResampleLengthWise(xs, ys, LengthWiseGap)
	if err != nil {
		log.Printf("decoder: %s: %v: %v", host, ErrBadRequest, err)
		return
	}
	nearest := NearestIndices(sampled, xs, ys)
	features := ExtractFeatures(raw, lwX, lwY, nearest)

	isCommand := bank == s.Commands
	cand := PruneByCorners(bank, features.CornerBand, isCommand)
	if len(cand) == 0 {
		log.Printf("decoder: %s: %v", host, ErrEmptyCandidateSet)
		return
	}

	words := make([]string, len(cand))
	for i, idx := range cand {
		words[i] = bank.Words[idx]
	}

	var shapeScores, locScores, langScores []float64
	langExponent := BigramExponent

	if isCommand {
		// Command decoding ignores language scores and uses the
		// min-max shape inversion instead of the lexicon's Gaussian
		// conversion (§4.8).
		shapeScores = CommandShapeScores(normal.X, normal.Y, features.Weights, bank, cand)
		locScores = constantScores(len(cand), 1)
		langScores = constantScores(len(cand), 1)
	} else {
		shapeScores = ShapeScores(normal.X, normal.Y, features.Weights, bank, cand)

		dx, dy := sess.Offset()
		if (dx != 0 || dy != 0) && LocationGateOK(dx, dy, xs, ys) {
			locScores = LocationScores(sampled.X, sampled.Y, features.Weights, bank, cand, dx, dy)
		} else {
			locScores = constantScores(len(cand), 1)
		}

		prevWord := req.PrevWord
		if prevWord == "" {
			prevWord = HeadSentinel
		}
		prevText := strings.TrimSpace(req.PrevText)

		useNeural := s.Neural != nil && len(strings.Fields(prevText)) >= 2
		if useNeural {
			ids := make([][]int, len(cand))
			for i, idx := range cand {
				ids[i] = bank.TokenIDs[idx]
			}
			context_ := strings.Fields(prevText)
			if len(context_) == 0 {
				context_ = []string{prevWord}
			}
			neuralScores, err := s.Neural.Score(context.Background(), context_, ids)
			if err == nil {
				langScores = neuralScores
				langExponent = NeuralExponent
			} else {
				log.Printf("decoder: %s: %v", host, err)
				useNeural = false
			}
		}
		if !useNeural {
			langScores = make([]float64, len(cand))
			for i := range words {
				if s.Bigram != nil {
					langScores[i] = s.Bigram.Score(prevWord, words[i])
				} else if s.Unigram != nil {
					langScores[i] = s.Unigram.Score(words[i])
				} else {
					langScores[i] = 1
				}
			}
			langExponent = BigramExponent
		}
	}

	ranked := Integrate(words, shapeScores, locScores, langScores, langExponent)
	ranked = FilterUndoWord(ranked, req.UndoWords)
	ranked = TopK(ranked, topK)
	if len(ranked) == 0 {
		return
	}

	sess.RecordStroke(raw)

	resp := response{
		ResultWords:  make([]string, len(ranked)),
		ResultScores: make([]float64, len(ranked)),
	}
	for i, c := range ranked {
		resp.ResultWords[i] = c.Word
		resp.ResultScores[i] = c.Integrated
	}

	if err := s.replyResult(host, req.Port, resp); err != nil {
		log.Printf("decoder: %s: %v", host, err)
	}
}

func (s *Service) replyResult(host string, callbackPort int, resp response) error {
	cb, err := net.DialTimeout("tcp", fmt.Sprintf("%s:%d", host, callbackPort), 2*time.Second)
	if err != nil {
		return fmt.Errorf("%w: dialing callback: %v", ErrTransientNetwork, err)
	}
	defer cb.Close()
	if err := json.NewEncoder(cb).Encode(resp); err != nil {
		return fmt.Errorf("%w: encoding reply: %v", ErrTransientNetwork, err)
	}
	return nil
}

// parsePointList parses a "[1,2,3]"-style bracketed, comma-separated list
// of floats, the wire format every point array arrives in.
func parsePointList(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing point list %q: %w", s, err)
		}
		out = append(out, v)
	}
	return out, nil
}
