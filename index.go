package main

import "net/http"

// indexHTML is a minimal browser client for poking the lobby by hand:
// it speaks the full protocol except that rtc_* payloads are only
// logged, not fed into a real peer connection.
const indexHTML = `<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>Sala Lobby</title>
<style>
*{margin:0;padding:0;box-sizing:border-box}
:root{--bg:#191919;--card:#242424;--border:#333;--fg:#e5e5e5;--muted:#737373;--radius:6px}
body{font-family:system-ui,-apple-system,'Segoe UI',Roboto,sans-serif;background:var(--bg);color:var(--fg);padding:24px;display:flex;justify-content:center}
.wrap{width:100%;max-width:760px;display:flex;flex-direction:column;gap:16px}
h1{font-size:16px;font-weight:600}
.muted{font-size:11px;color:var(--muted)}
.card{background:var(--card);border:1px solid var(--border);border-radius:var(--radius);padding:14px;display:flex;flex-direction:column;gap:8px}
.row{display:flex;gap:8px;flex-wrap:wrap;align-items:center}
input,select{background:var(--bg);border:1px solid var(--border);border-radius:var(--radius);color:var(--fg);padding:6px 8px;font-size:12px}
button{background:#2e2e2e;border:1px solid var(--border);border-radius:var(--radius);color:var(--fg);padding:6px 12px;font-size:12px;cursor:pointer}
button:hover{background:#3a3a3a}
table{width:100%;font-size:12px;border-collapse:collapse}
td,th{text-align:left;padding:4px 6px;border-bottom:1px solid var(--border)}
#log{font-family:ui-monospace,monospace;font-size:11px;color:var(--muted);max-height:240px;overflow-y:auto;white-space:pre-wrap}
</style>
</head>
<body>
<div class="wrap">
<h1>Sala Lobby</h1>
<div class="muted" id="me">conectando…</div>

<div class="card">
<div class="row">
<input id="roomName" placeholder="nombre de la sala">
<select id="visibility"><option value="public">pública</option><option value="private">privada</option></select>
<select id="lock"><option value="code">código</option><option value="password">contraseña</option></select>
<input id="password" placeholder="contraseña" size="10">
<input id="capacity" type="number" min="2" max="16" value="4" size="3">
<button onclick="createRoom()">Crear</button>
<button onclick="send({t:'list'})">Actualizar</button>
</div>
<table><thead><tr><th>sala</th><th>jugadores</th><th>acceso</th><th>estado</th><th></th></tr></thead>
<tbody id="rooms"></tbody></table>
</div>

<div class="card">
<div class="row">
<input id="nick" placeholder="apodo" size="12">
<input id="chatText" placeholder="mensaje" size="30">
<button onclick="chat()">Chat</button>
<button onclick="leave()">Salir de la sala</button>
</div>
<div id="log"></div>
</div>
</div>

<script>
const proto = location.protocol === 'https:' ? 'wss' : 'ws';
const ws = new WebSocket(proto + '://' + location.host + '/ws');
let myId = null;

function send(obj){ ws.send(JSON.stringify(obj)); }
function logLine(s){
  const el = document.getElementById('log');
  el.textContent += s + '\n';
  el.scrollTop = el.scrollHeight;
}

function createRoom(){
  send({t:'create_room',
    name: document.getElementById('roomName').value,
    visibility: document.getElementById('visibility').value,
    lock: document.getElementById('lock').value,
    password: document.getElementById('password').value,
    maxPlayers: parseInt(document.getElementById('capacity').value, 10)});
}

function joinRoom(id, codeRequired, passwordRequired){
  const msg = {t:'join_room', roomId:id, nickname:document.getElementById('nick').value};
  if (codeRequired) msg.code = prompt('Código de la sala:') || '';
  if (passwordRequired) msg.password = prompt('Contraseña de la sala:') || '';
  send(msg);
}

function leave(){ send({t:'leave_room'}); }

function chat(){
  const el = document.getElementById('chatText');
  send({t:'chat', text: el.value});
  el.value = '';
}

function renderRooms(rooms){
  const tbody = document.getElementById('rooms');
  tbody.innerHTML = '';
  for (const r of rooms){
    const tr = document.createElement('tr');
    const access = r.codeRequired ? 'código' : (r.passwordRequired ? 'contraseña' : 'libre');
    tr.innerHTML = '<td>' + r.name + '</td><td>' + r.players + '/' + r.maxPlayers +
      '</td><td>' + access + '</td><td>' + r.status + '</td><td></td>';
    const btn = document.createElement('button');
    btn.textContent = 'Entrar';
    btn.onclick = () => joinRoom(r.id, r.codeRequired, r.passwordRequired);
    tr.lastChild.appendChild(btn);
    tbody.appendChild(tr);
  }
}

ws.onmessage = (ev) => {
  const msg = JSON.parse(ev.data);
  switch (msg.t){
    case 'welcome':
      myId = msg.playerId;
      document.getElementById('me').textContent = 'tu id: ' + myId;
      break;
    case 'rooms': renderRooms(msg.rooms); break;
    case 'created': logLine('sala creada' + (msg.code ? ' · código ' + msg.code : '')); break;
    case 'joined': logLine('entraste en ' + msg.room.name); break;
    case 'roster': logLine('en la sala: ' + msg.roster.map(p => p.nickname).join(', ')); break;
    case 'peer_joined': logLine('+ ' + msg.nickname); break;
    case 'peer_left': logLine('- ' + msg.id); break;
    case 'chat': logLine('[' + msg.from + '] ' + msg.text); break;
    case 'world': break;
    case 'error': logLine('error: ' + msg.message); break;
    default: logLine('← ' + ev.data);
  }
};
ws.onclose = () => { document.getElementById('me').textContent = 'desconectado'; };
</script>
</body>
</html>
`

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexHTML))
}
