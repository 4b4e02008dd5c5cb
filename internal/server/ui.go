package server

// indexHTML is the embedded single-page browsing UI: conversation list in a
// sidebar, message view on the right, and a debounced search box backed by
// /api/search.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Chat Explorer</title>
  <style>
    * { margin: 0; padding: 0; box-sizing: border-box; }
    body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
           background: #1a1a2e; color: #eee; height: 100vh; display: flex; }
    .sidebar { width: 350px; background: #16213e; border-right: 1px solid #0f3460;
               display: flex; flex-direction: column; height: 100vh; }
    .sidebar-header { padding: 20px; border-bottom: 1px solid #0f3460; }
    .sidebar-header h1 { font-size: 1.4em; color: #e94560; margin-bottom: 15px; }
    .search-box { width: 100%; padding: 10px 15px; border: 1px solid #0f3460; border-radius: 8px;
                  background: #1a1a2e; color: #eee; font-size: 14px; }
    .search-box:focus { outline: none; border-color: #e94560; }
    .stats { padding: 10px 20px; background: #0f3460; font-size: 12px; color: #888; }
    .conversation-list { flex: 1; overflow-y: auto; }
    .conversation-item { padding: 15px 20px; border-bottom: 1px solid #0f3460; cursor: pointer; }
    .conversation-item:hover { background: #1a1a2e; }
    .conversation-item.active { background: #0f3460; border-left: 3px solid #e94560; }
    .conversation-item h3 { font-size: 14px; margin-bottom: 5px; color: #fff;
                            white-space: nowrap; overflow: hidden; text-overflow: ellipsis; }
    .conversation-item .meta { font-size: 11px; color: #666; }
    .main { flex: 1; display: flex; flex-direction: column; height: 100vh; overflow: hidden; }
    .conversation-header { padding: 20px; background: #16213e; border-bottom: 1px solid #0f3460; }
    .conversation-header h2 { font-size: 1.3em; color: #fff; margin-bottom: 5px; }
    .conversation-header .meta { font-size: 12px; color: #666; }
    .messages { flex: 1; overflow-y: auto; padding: 20px; }
    .message { margin-bottom: 20px; max-width: 85%; }
    .message.user { margin-left: auto; }
    .message.assistant, .message.other { margin-right: auto; }
    .message-bubble { padding: 15px 20px; border-radius: 15px; line-height: 1.6; }
    .message.user .message-bubble { background: #0f3460; border-bottom-right-radius: 5px; }
    .message.assistant .message-bubble, .message.other .message-bubble {
      background: #1a1a2e; border: 1px solid #0f3460; border-bottom-left-radius: 5px; }
    .message-sender { font-size: 11px; color: #e94560; margin-bottom: 5px;
                      text-transform: uppercase; font-weight: 600; }
    .message-time { font-size: 10px; color: #555; margin-top: 8px; }
    .message-content { white-space: pre-wrap; word-wrap: break-word; font-size: 14px; }
    .empty-state { display: flex; flex-direction: column; align-items: center;
                   justify-content: center; height: 100%; color: #555; }
  </style>
</head>
<body>
  <div class="sidebar">
    <div class="sidebar-header">
      <h1>Chat Explorer</h1>
      <input type="text" class="search-box" id="search" placeholder="Search conversations...">
    </div>
    <div class="stats" id="stats">Loading conversations...</div>
    <div class="conversation-list" id="conversation-list"></div>
  </div>
  <div class="main">
    <div class="conversation-header" id="conv-header" style="display: none;">
      <h2 id="conv-title"></h2>
      <div class="meta" id="conv-meta"></div>
    </div>
    <div class="messages" id="messages">
      <div class="empty-state"><h2>Welcome!</h2><p>Select a conversation from the sidebar.</p></div>
    </div>
  </div>
  <script>
    let conversations = [];
    let currentConvId = null;

    function formatDate(s) {
      if (!s) return '';
      const d = new Date(s);
      if (isNaN(d)) return '';
      return d.toLocaleDateString('en-US', { year: 'numeric', month: 'short', day: 'numeric',
                                             hour: '2-digit', minute: '2-digit' });
    }

    function escapeHtml(text) {
      if (!text) return '';
      const div = document.createElement('div');
      div.textContent = text;
      return div.innerHTML;
    }

    function renderList(convs) {
      const list = document.getElementById('conversation-list');
      if (!convs.length) {
        list.innerHTML = '<div class="conversation-item">No conversations found</div>';
        return;
      }
      list.innerHTML = convs.map(c =>
        '<div class="conversation-item ' + (c.uuid === currentConvId ? 'active' : '') + '"' +
        ' onclick="loadConversation(\'' + c.uuid + '\')">' +
        '<h3>' + escapeHtml(c.name || 'Untitled') + '</h3>' +
        '<div class="meta">' + formatDate(c.created_at) + ' &middot; ' + c.message_count + ' messages</div>' +
        '</div>').join('');
    }

    async function loadConversations() {
      const res = await fetch('/api/conversations');
      conversations = await res.json();
      renderList(conversations);
      document.getElementById('stats').textContent = conversations.length + ' conversations';
    }

    async function loadConversation(uuid) {
      currentConvId = uuid;
      const res = await fetch('/api/conversation?id=' + encodeURIComponent(uuid));
      if (!res.ok) return;
      const conv = await res.json();
      document.getElementById('conv-header').style.display = 'block';
      document.getElementById('conv-title').textContent = conv.name || 'Untitled';
      document.getElementById('conv-meta').textContent =
        'Created: ' + formatDate(conv.created_at) + ' · ' + conv.messages.length + ' messages';
      document.getElementById('messages').innerHTML = conv.messages.map(m =>
        '<div class="message ' + m.sender + '">' +
        '<div class="message-bubble">' +
        '<div class="message-sender">' + m.sender + '</div>' +
        '<div class="message-content">' + escapeHtml(m.content) + '</div>' +
        '<div class="message-time">' + formatDate(m.created_at) + '</div>' +
        '</div></div>').join('');
      renderList(conversations);
    }

    let searchTimeout;
    document.getElementById('search').addEventListener('input', (e) => {
      clearTimeout(searchTimeout);
      const query = e.target.value.trim();
      searchTimeout = setTimeout(async () => {
        if (!query.length) { renderList(conversations); return; }
        const res = await fetch('/api/search?q=' + encodeURIComponent(query));
        renderList(await res.json());
      }, 300);
    });

    loadConversations();
  </script>
</body>
</html>
`
